package session

type Location string

const (
	LocationSignIn Location = "sign-in"
	LocationSetup  Location = "setup-profile"
	LocationHome   Location = "home"
	LocationOther  Location = "other"
)

type Route string

const (
	RouteStay   Route = "stay"
	RouteSignIn Route = "sign-in"
	RouteSetup  Route = "setup-profile"
	RouteHome   Route = "home"
)

// Redirect decides where a consumer showing location should go next.
func Redirect(snap Snapshot, location Location) Route {
	if snap.Status == StatusLoading {
		return RouteStay
	}
	if snap.Session == nil {
		if location == LocationSignIn {
			return RouteStay
		}
		return RouteSignIn
	}
	if snap.ProfilePending {
		return RouteStay
	}

	switch snap.Status {
	case StatusNoProfile:
		if location != LocationSetup {
			return RouteSetup
		}
	case StatusReady:
		if location == LocationSignIn || location == LocationSetup {
			return RouteHome
		}
	}
	return RouteStay
}
