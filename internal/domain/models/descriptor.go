package models

import "strings"

// DescriptorSeparator splits "<serial> - <name>" equipment descriptors.
const DescriptorSeparator = " - "

// Descriptor is the structured form of a free-text equipment field.
type Descriptor struct {
	Serial string
	Name   string
}

// ParseDescriptor extracts the serial number and item name from values such as
// "SN-ACU-002 - Army Combat Uniform (OCP) Large-Long". Without a separator the
// trimmed input is used for both fields. ok is false when no serial can be read.
func ParseDescriptor(raw string) (Descriptor, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Descriptor{}, false
	}

	serial, name, found := strings.Cut(raw, DescriptorSeparator)
	if !found {
		return Descriptor{Serial: trimmed, Name: trimmed}, true
	}

	serial = strings.TrimSpace(serial)
	if serial == "" {
		return Descriptor{}, false
	}

	return Descriptor{Serial: serial, Name: strings.TrimSpace(name)}, true
}
