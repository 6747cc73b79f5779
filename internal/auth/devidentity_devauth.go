//go:build devauth

package auth

// DevIdentity is returned for unauthenticated requests in development builds
// compiled with -tags devauth.
var DevIdentity = Identity{
	ID:          "dev-slack-id",
	DisplayName: "Development User",
	Email:       "dev@example.com",
}

func developmentIdentity(env string) (Identity, bool) {
	if env != "development" {
		return Identity{}, false
	}
	return DevIdentity, true
}
