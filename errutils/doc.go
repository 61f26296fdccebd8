package errutils

// Package errutils provides a set of utilities for working with errors in Go.

// Example:
//
// The following example demonstrates how to use `NewCustomError` to create errors from a template:
//
//     package main
//
//     import (
//         "fmt"
//         "oss.nandlabs.io/opspulse/errutils"
//     )
//
//     var ErrNotFound = errutils.NewCustomError("item %s not found")
//
//     func main() {
//         err := ErrNotFound.Err("abc")
//         fmt.Println(err)
//     }
//
// In the above example, `Err` fills the template with its arguments, and the program prints "item abc not found".
