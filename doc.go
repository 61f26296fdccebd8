// Package golly is a collection of reusable common utilities for the Go programming language.
//
// Golly provides a wide range of sub-packages that cover common application needs
// including logging, configuration, REST client/server, messaging, codec, collections,
// CLI, GenAI providers, and more.
//
// Each sub-package is independently importable:
//
//	import "oss.nandlabs.io/opspulse/rest"      // REST client and server
//	import "oss.nandlabs.io/opspulse/l3"        // Logging
//	import "oss.nandlabs.io/opspulse/codec"     // Encoding/decoding (JSON, XML, YAML)
//	import "oss.nandlabs.io/opspulse/config"    // Application configuration
//	import "oss.nandlabs.io/opspulse/messaging" // Generic messaging API
//	import "oss.nandlabs.io/opspulse/genai"     // Generative AI provider abstractions
//
// For a complete list of packages and documentation, see:
// https://pkg.go.dev/oss.nandlabs.io/opspulse
package golly
