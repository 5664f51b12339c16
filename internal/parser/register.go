package parser

// This file is imported by the engine to trigger parser registration. All
// parsers register themselves in their init() functions.
//
// Registered parsers:
// - Login (0x01)
// - Status (0x13)
// - GPS positioning (0x10)
// - GPS offline positioning (0x11)
// - Wi-Fi offline positioning (0x17)
// - Wi-Fi positioning (0x69)
//
// Opcodes with no payload worth decoding (supervision, heartbeat, reset,
// whitelist_total, stop_alarm, setup, synchronous_whitelist,
// restore_password, manual_positioning, battery_charge,
// charger_connected/disconnected, vibration_received,
// position_upload_interval, time) are dispatched directly by the engine.

// Compile-time check that every parser file above is linked in.
var (
	_ = NewLoginParser
	_ = NewStatusParser
	_ = NewGPSParser
	_ = NewWiFiLBSParser
)
