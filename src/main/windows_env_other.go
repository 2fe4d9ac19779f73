//go:build !windows

package main

import (
	"log"

	"screen-translate/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	if b, err := screenshot.PrimaryDisplay(); err == nil {
		log.Printf("MONITOR: Primary screen - w:%d h:%d", b.Dx(), b.Dy())
	}
}
