// Package hclprogram reads and writes program documents as HCL.
//
// A program file looks like this:
//
//	version = 1
//	view    = { zoom = 1.5 }
//
//	box "spinner_0" {
//	  type = "primitive_io/spinner"
//	  x    = 10
//	  y    = 20
//	}
//
//	wire "wire_0" {
//	  src_box   = "spinner_0"
//	  src_plug  = "value"
//	  dest_box  = "add_0"
//	  dest_plug = "a"
//	}
//
// Blocks keep their order, which matters for wires: adding a wire may
// deliver a value right away.
package hclprogram
