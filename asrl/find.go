// Copyright (c) 2022–2026 The scpi developers. All rights reserved.
// Project site: https://github.com/gotmc/scpi
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package asrl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PortInfo describes a USB serial port found under /sys/class/tty.
type PortInfo struct {
	Device       string // tty name, e.g. ttyUSB0
	Path         string // resolved sysfs path
	VendorID     string
	ProductID    string
	Manufacturer string
	Product      string
	Serial       string
}

func (p PortInfo) String() string {
	return fmt.Sprintf("dev %s vid/pid %s/%s mfg/prod %s/%s serial %s",
		p.Device, p.VendorID, p.ProductID, p.Manufacturer, p.Product, p.Serial)
}

// Filter narrows port discovery; the first port it accepts is chosen.
type Filter func(*PortInfo) bool

// BySerial matches a port by its USB serial number, the one stable handle
// across replugs and renumbering.
func BySerial(serial string) Filter {
	return func(p *PortInfo) bool { return p.Serial == serial }
}

// ByManufacturer matches a port whose USB manufacturer string contains s.
func ByManufacturer(s string) Filter {
	return func(p *PortInfo) bool { return strings.Contains(p.Manufacturer, s) }
}

// ByProduct matches a port whose USB product string contains s.
func ByProduct(s string) Filter {
	return func(p *PortInfo) bool { return strings.Contains(p.Product, s) }
}

// Find locates a USB serial device and returns its /dev path. With a nil
// filter it succeeds only when exactly one USB tty exists; with a filter,
// the first accepted port wins.
func Find(filter Filter) (string, error) {
	ports, err := List()
	if err != nil {
		return "", err
	}
	if filter != nil {
		for i := range ports {
			if filter(&ports[i]) {
				return "/dev/" + ports[i].Device, nil
			}
		}
		return "", fmt.Errorf("no tty matches the filter among %d found", len(ports))
	}
	switch len(ports) {
	case 0:
		return "", fmt.Errorf("no usb ttys found")
	case 1:
		return "/dev/" + ports[0].Device, nil
	}
	return "", fmt.Errorf("multiple usb ttys: %v", ports)
}

// List enumerates USB serial ports by walking /sys/class/tty and reading
// the USB descriptor strings from the owning device.
func List() ([]PortInfo, error) {
	const sct = "/sys/class/tty/"
	entries, err := os.ReadDir(sct)
	if err != nil {
		return nil, err
	}
	var ports []PortInfo
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		abs, err := filepath.EvalSymlinks(filepath.Join(sct, e.Name()))
		if err != nil || !strings.Contains(abs, "usb") {
			continue
		}
		dev, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			continue
		}
		// The USB descriptor files live one level above the interface
		// directory the tty points at.
		info := readUSBInfo(filepath.Dir(dev))
		info.Device = e.Name()
		info.Path = abs
		ports = append(ports, info)
	}
	return ports, nil
}

func readUSBInfo(dir string) PortInfo {
	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
	return PortInfo{
		VendorID:     read("idVendor"),
		ProductID:    read("idProduct"),
		Manufacturer: read("manufacturer"),
		Product:      read("product"),
		Serial:       read("serial"),
	}
}
