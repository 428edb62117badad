package endpoints

// Endpoints groups every endpoint the HTTP transport exposes.
type Endpoints struct {
	FunnelEndpoint FunnelEndpoint
}
