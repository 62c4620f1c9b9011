package packager

import "runtime"

// debArch maps the build architecture to Debian naming.
func debArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "amd64"
	case "386":
		return "i386"
	case "arm64":
		return "arm64"
	case "arm":
		return "armhf"
	default:
		return runtime.GOARCH
	}
}

// rpmArch maps the build architecture to RPM naming.
func rpmArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}

// solarisArch maps the build architecture to Solaris pkginfo naming.
func solarisArch() string {
	switch runtime.GOARCH {
	case "amd64", "386":
		return "i386"
	case "sparc64":
		return "sparc"
	default:
		return runtime.GOARCH
	}
}
