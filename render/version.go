package render

import "fmt"

// Version is a packed major.minor.patch version as understood by the driver.
type Version uint32

func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | minor<<12 | patch)
}

func (v Version) Major() uint32 { return uint32(v) >> 22 }
func (v Version) Minor() uint32 { return (uint32(v) >> 12) & 0x3ff }
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

var (
	Vulkan1_0 = MakeVersion(1, 0, 0)
	Vulkan1_1 = MakeVersion(1, 1, 0)
	Vulkan1_2 = MakeVersion(1, 2, 0)
)
