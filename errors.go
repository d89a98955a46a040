package goSession

import "errors"

var (
	// ErrBuilderReused is returned by [Builder.Build] when the builder has
	// already produced a controller.
	ErrBuilderReused = errors.New("builder already used")
	// ErrInvalidConfig wraps all configuration validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrControllerClosed is returned by controller operations after Close.
	ErrControllerClosed = errors.New("controller closed")
	// ErrNotAuthenticated is returned by operations that require a live
	// session when the controller is logged out.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRefreshUnavailable is returned by [Controller.RefreshAndExtend]
	// when no credential client was configured.
	ErrRefreshUnavailable = errors.New("refresh unavailable: no credential client")
	// ErrRefreshFailed is returned when the credential client could not
	// produce a new token. The session state is left unchanged: only the
	// independent expiry and idle timers can force a logout.
	ErrRefreshFailed = errors.New("refresh failed")
)
