// Stepper kinematics construction from configuration strings
//
// Copyright (C) 2018-2021  Kevin O'Connor <kevin@koconnor.net>
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package kinematics

import "fmt"

// SupportedKinds lists the stepper kinematics names New understands. Delta
// towers are excluded: they need tower geometry and are built with NewDelta.
func SupportedKinds() []string {
	return []string{"cartesian_x", "cartesian_y", "cartesian_z",
		"corexy+", "corexy-", "extruder"}
}

// New creates the stepper position formula named by a configuration string.
func New(kind string) (Kinematics, error) {
	switch kind {
	case "cartesian_x":
		return NewCartesian('x')
	case "cartesian_y":
		return NewCartesian('y')
	case "cartesian_z":
		return NewCartesian('z')
	case "corexy+":
		return NewCoreXY('+')
	case "corexy-":
		return NewCoreXY('-')
	case "extruder":
		return NewExtruder(), nil
	}
	return nil, fmt.Errorf("kinematics: unknown stepper kinematics %q", kind)
}
