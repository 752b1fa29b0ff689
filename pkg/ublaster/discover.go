package ublaster

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// InterfaceInfo describes a USB-Blaster-class adapter found on the bus,
// adapted from the CMSIS-DAP/PicoProbe discovery pattern to the single
// known Altera USB-Blaster VID/PID pair (spec.md §12 supplemented feature:
// an interface discovery command).
type InterfaceInfo struct {
	Description string
	VendorID    uint16
	ProductID   uint16
}

// Label returns a user-friendly description for the interface.
func (i InterfaceInfo) Label() string {
	if i.Description != "" {
		return fmt.Sprintf("%s (%04X:%04X)", i.Description, i.VendorID, i.ProductID)
	}
	return fmt.Sprintf("USB-Blaster-class device (%04X:%04X)", i.VendorID, i.ProductID)
}

// knownBlasterVIDPIDs lists the Altera/Intel USB-Blaster and USB-Blaster II
// identifiers recognized on the bus.
var knownBlasterVIDPIDs = []InterfaceInfo{
	{Description: "Altera USB-Blaster", VendorID: 0x09fb, ProductID: 0x6001},
	{Description: "Altera USB-Blaster II", VendorID: 0x09fb, ProductID: 0x6010},
	{Description: "Terasic USB-Blaster (rebrand)", VendorID: 0x09fb, ProductID: 0x6002},
}

// DiscoverInterfaces enumerates connected USB-Blaster-class devices.
func DiscoverInterfaces(ctx context.Context) ([]InterfaceInfo, error) {
	var results []InterfaceInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		for _, known := range knownBlasterVIDPIDs {
			if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
				results = append(results, known)
			}
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}

	results = append(results, InterfaceInfo{Description: "sim (no hardware, loopback backend)"})
	return results, nil
}
