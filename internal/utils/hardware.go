package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// GetRegisterID reads the physical MAC address of the machine and hashes it
// into a stable register identifier like "REG-A1B2C3D4", so receipts and
// support tickets can name the till they came from.
func GetRegisterID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "UNKNOWN-REGISTER"
	}

	var macAddress string
	for _, i := range interfaces {
		// Find the first active physical network interface
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			macAddress = i.HardwareAddr.String()
			break
		}
	}

	if macAddress == "" {
		return "UNKNOWN-REGISTER"
	}

	hash := sha256.Sum256([]byte(macAddress + "RETAIL-POS-SALT"))
	hashString := hex.EncodeToString(hash[:])

	// Clean 8-character register ID
	return "REG-" + strings.ToUpper(hashString[:8])
}
