// ABOUTME: Version constants
// ABOUTME: Product identification reported in logs
package version

const (
	// Version is the release version.
	Version = "0.1.0"

	// Product is the product name.
	Product = "Splitcast"

	// Manufacturer identifies the project.
	Manufacturer = "Splitcast Audio"
)
