package ublaster

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

func init() {
	RegisterBackend("gousb", func() Backend { return &gousbBackend{} })
}

// gousbBackend drives the USB-Blaster's FTDI FT245-style bulk endpoint pair
// through libusb, adapted from pkg/jtag's USBTransport (there claiming a
// CMSIS-DAP vendor-class interface; here the USB-Blaster exposes its bulk
// pair directly on interface 0).
type gousbBackend struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	intf *gousb.Interface

	epOut *gousb.OutEndpoint
	epIn  *gousb.InEndpoint
}

func (b *gousbBackend) Open(ctx context.Context, vid, pid uint16, desc string) error {
	usbCtx := gousb.NewContext()

	dev, err := usbCtx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		usbCtx.Close()
		return &TransportError{Op: "open", Err: fmt.Errorf("%s (VID:0x%04X PID:0x%04X): %w", desc, vid, pid, err)}
	}
	if dev == nil {
		usbCtx.Close()
		return &TransportError{Op: "open", Err: fmt.Errorf("%s not found (VID:0x%04X PID:0x%04X)", desc, vid, pid)}
	}

	_ = dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return &TransportError{Op: "open", Err: fmt.Errorf("get config: %w", err)}
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return &TransportError{Op: "open", Err: fmt.Errorf("claim interface 0: %w", err)}
	}

	b.ctx, b.dev, b.intf = usbCtx, dev, intf
	if err := b.findEndpoints(); err != nil {
		intf.Close()
		dev.Close()
		usbCtx.Close()
		return err
	}
	return nil
}

func (b *gousbBackend) findEndpoints() error {
	setting := b.intf.Setting
	var outAddr, inAddr int
	for _, ep := range setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionOut {
			outAddr = ep.Number
		} else if ep.Direction == gousb.EndpointDirectionIn {
			inAddr = ep.Number
		}
	}
	if outAddr == 0 {
		return &TransportError{Op: "open", Err: fmt.Errorf("bulk OUT endpoint not found")}
	}
	if inAddr == 0 {
		return &TransportError{Op: "open", Err: fmt.Errorf("bulk IN endpoint not found")}
	}

	epOut, err := b.intf.OutEndpoint(outAddr)
	if err != nil {
		return &TransportError{Op: "open", Err: fmt.Errorf("open OUT endpoint: %w", err)}
	}
	epIn, err := b.intf.InEndpoint(inAddr)
	if err != nil {
		return &TransportError{Op: "open", Err: fmt.Errorf("open IN endpoint: %w", err)}
	}
	b.epOut, b.epIn = epOut, epIn
	return nil
}

func (b *gousbBackend) Write(ctx context.Context, p []byte) (int, error) {
	n, err := b.epOut.Write(p)
	if err != nil {
		return n, &TransportError{Op: "write", Err: err}
	}
	return n, nil
}

func (b *gousbBackend) Read(ctx context.Context, p []byte) (int, error) {
	n, err := b.epIn.Read(p)
	if err != nil {
		return n, &TransportError{Op: "read", Err: err}
	}
	return n, nil
}

func (b *gousbBackend) Close() error {
	if b.intf != nil {
		b.intf.Close()
		b.intf = nil
	}
	if b.dev != nil {
		b.dev.Close()
		b.dev = nil
	}
	if b.ctx != nil {
		b.ctx.Close()
		b.ctx = nil
	}
	return nil
}
