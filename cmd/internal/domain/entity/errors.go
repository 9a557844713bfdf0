package entity

import "errors"

// ErrSlotTaken is returned by appointment stores when a CONFIRMED appointment
// already exists for the same doctor and instant.
var ErrSlotTaken = errors.New("slot already has a confirmed appointment")
