package domain

// InstallLocation names one of the Driver Root's well-known install
// directories. BuildContext.Install copies or links a finished output
// into one of these instead of leaving it only reachable by tag.
type InstallLocation uint8

const (
	// InstallBin places an executable on the driver root's bin directory.
	InstallBin InstallLocation = iota
	// InstallLib places a shared library on the driver root's lib directory.
	InstallLib
	// InstallNodeModules places a package under the driver root's
	// node_modules directory.
	InstallNodeModules
)

// String renders the install location's directory name.
func (l InstallLocation) String() string {
	switch l {
	case InstallBin:
		return "bin"
	case InstallLib:
		return "lib"
	case InstallNodeModules:
		return "node_modules"
	default:
		return "unknown"
	}
}
