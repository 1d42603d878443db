package entities

// Permission is a bitmask of capability flags carried by a Role.
type Permission uint8

const (
	PermissionComment          Permission = 0x01
	PermissionAddBooks         Permission = 0x02
	PermissionModerateBooks    Permission = 0x04
	PermissionModerateComments Permission = 0x08
	PermissionModerateLibrary  Permission = 0x10
	PermissionAdminister       Permission = 0x80

	// PermissionAll is the super-role bitmask with every flag set.
	PermissionAll Permission = 0xff
)

// Has reports whether every bit of other is set in p.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}
