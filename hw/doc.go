// The hw package provides a hardware abstraction layer for the rendering
// accelerator.
//
// It implements low-level access to the register window, the interrupt line
// and the completion notes woken from the interrupt handler. All hardware
// capabilities are directly exposed and in general unsafe. Use the drivers
// packages to talk to the device instead.
package hw
