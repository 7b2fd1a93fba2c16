package interfaces

// Service is the lifecycle of an interface exposing the daemon to parties
// and operators.
type Service interface {
	Start() error
	Stop()
}
