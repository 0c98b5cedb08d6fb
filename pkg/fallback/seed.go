package fallback

import "github.com/wirelark/fortidash/pkg/models"

// The seed dataset is a fixed, curated sample matching the live shapes. It is
// served only when both the live path and the disk snapshot are unavailable,
// such as the first run of a fresh install with the appliance unreachable.

// SeedFirewall returns the sample appliance record.
func SeedFirewall() *models.Firewall {
	return &models.Firewall{
		ID:        "FGT61F0000000000",
		Hostname:  "FortiGate-61F",
		Model:     "FortiGate-61F",
		Serial:    "FGT61F0000000000",
		Version:   "v7.6.4",
		IPAddress: "192.168.1.1",
		Status:    models.StatusUnknown,
	}
}

// SeedSwitches returns the sample managed-switch roster.
func SeedSwitches() []models.Switch {
	return []models.Switch{
		{
			ID:              "FSW124E0000000000",
			Name:            "Office-Switch-1",
			Serial:          "FSW124E0000000000",
			Model:           "FS-124E-POE",
			IPAddress:       "192.168.1.10",
			FirmwareVersion: "v7.4.1",
			Status:          models.StatusUnknown,
			PortsTotal:      24,
			Ports: []models.SwitchPort{
				{Name: "port1", PoECapable: true},
				{Name: "port2", PoECapable: true},
			},
		},
	}
}

// SeedAccessPoints returns the sample access-point roster.
func SeedAccessPoints() []models.AccessPoint {
	return []models.AccessPoint{
		{
			ID:              "FAP231F0000000000",
			Name:            "Office-AP-1",
			Serial:          "FAP231F0000000000",
			Model:           "FAP231F",
			IPAddress:       "192.168.1.20",
			FirmwareVersion: "FAP231F-v7.4.1",
			Status:          models.StatusUnknown,
			BoardMAC:        "00:00:00:00:00:00",
			SSIDs:           []string{"Office-WiFi"},
		},
	}
}
