package outbound

// ConnectivityObserver reports offline-to-online transitions. Callbacks
// registered with OnAvailable fire at most once per transition, never
// continuously while the connection stays up. Implementations may probe the
// network, listen to OS reachability events, or expose an explicit user
// action.
type ConnectivityObserver interface {
	OnAvailable(fn func())
}
