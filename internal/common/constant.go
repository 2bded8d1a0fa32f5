package common

const (
	// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
	// carries the bearer credential.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix precedes the token inside the authorization header.
	BearerPrefix = "Bearer "

	// AuthorityUser is granted to every registered identity.
	AuthorityUser = "USER"

	// AuthorityAdmin is granted to the bootstrap administrator.
	AuthorityAdmin = "ADMIN"
)
