package provider

import "github.com/blackwell-systems/chocobridge/internal/activity"

// Host is the callback surface a host hands to each provider operation.
// Results flow back through yields and the activity protocol, never through
// return values; the diagnostic methods are the only surfaced error signal
// besides the operation's own error return.
type Host interface {
	activity.Reporter

	// YieldSoftwareIdentity delivers one package identity to the host. The
	// token is the provider-private reference the host will hand back on
	// later install/uninstall/download calls.
	YieldSoftwareIdentity(token, name, version, source, summary string)

	// YieldPackageSource delivers one package source to the host.
	// registered reports whether the provider itself registered the source
	// (as opposed to finding it preconfigured in the engine).
	YieldPackageSource(name, location string, trusted, registered bool)

	// Verbose, Warning and Error write to the host diagnostic channel.
	Verbose(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}
