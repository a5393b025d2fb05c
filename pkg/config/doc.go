// Package config loads simulator profiles from YAML.
//
// A profile describes the simulated controller (table capacity, command
// payload limit, response latency), the engine tuning, the NFCEEs the
// controller reports at discovery, and the routes applied once discovery
// completes:
//
//	controller:
//	  table_size: 720
//	  max_payload: 253
//	  latency: 5ms
//	engine:
//	  debounce: 100ms
//	capabilities:
//	  screen: full
//	  routing_order: [aid, apdu, protocol, technology]
//	ees:
//	  - id: 0x86
//	    interfaces: [apdu, hci]
//	routes:
//	  tech:
//	    - target: 0x86
//	      switch_on: A|B
//	  aid:
//	    - target: 0x86
//	      aid: A0000000031010
//	      power: ON
package config
