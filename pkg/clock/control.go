// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the kind of time policy a game is played under.
type Kind string

const (
	Untimed   Kind = "untimed"   // no limit on thinking time
	Fixed     Kind = "fixed"     // a single budget for the whole game
	Increment Kind = "increment" // budget plus a fixed amount after every move
	Bronstein Kind = "bronstein" // budget plus the time used, up to a delay
)

var ErrControl = errors.New("clock: invalid time control")

// Control describes the time policy of a game. Every game creates its own
// Clock from the Control, so a Control may be shared freely.
type Control struct {
	Kind      Kind          `yaml:"kind" env:"KIND"`
	Base      time.Duration `yaml:"base" env:"BASE"`
	Increment time.Duration `yaml:"increment" env:"INCREMENT"`
}

// Validate checks the Control for errors.
func (tc Control) Validate() error {
	switch tc.Kind {
	case Untimed:
		return nil
	case Fixed, Increment, Bronstein:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrControl, tc.Kind)
	}

	switch {
	case tc.Base <= 0:
		return fmt.Errorf("%w: base time %v is not positive", ErrControl, tc.Base)
	case tc.Increment < 0:
		return fmt.Errorf("%w: increment %v is negative", ErrControl, tc.Increment)
	case tc.Kind == Fixed && tc.Increment != 0:
		return fmt.Errorf("%w: fixed budget with an increment", ErrControl)
	}

	return nil
}

// String returns the compact base+inc notation of the Control, in seconds.
func (tc Control) String() string {
	seconds := func(d time.Duration) string {
		return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	}

	switch tc.Kind {
	case Untimed:
		return "inf"
	case Fixed:
		return seconds(tc.Base)
	case Bronstein:
		return seconds(tc.Base) + "+" + seconds(tc.Increment) + "d"
	default:
		return seconds(tc.Base) + "+" + seconds(tc.Increment)
	}
}

// ParseControl parses a time control written as base+inc, with both the
// base time and the increment in seconds. A trailing d on the increment
// selects a Bronstein delay, and inf selects an untimed game. The given
// kind, if not empty, overrides the kind inferred from the string.
func ParseControl(kind string, tc_str string) (Control, error) {
	var tc Control

	tc_str = strings.TrimSpace(tc_str)
	if tc_str == "inf" || tc_str == "" {
		tc.Kind = Untimed
		if kind != "" && Kind(kind) != Untimed {
			return Control{}, fmt.Errorf("%w: %s clock without a base time", ErrControl, kind)
		}

		return tc, nil
	}

	time_str, inc_str, found := strings.Cut(tc_str, "+")

	secs, err := strconv.ParseFloat(time_str, 64)
	if err != nil {
		return Control{}, fmt.Errorf("%w: base time %q: %v", ErrControl, time_str, err)
	}

	tc.Base = time.Millisecond * time.Duration(secs*1000)
	tc.Kind = Fixed

	if found {
		tc.Kind = Increment
		if cut, ok := strings.CutSuffix(inc_str, "d"); ok {
			tc.Kind, inc_str = Bronstein, cut
		}

		incs, err := strconv.ParseFloat(inc_str, 64)
		if err != nil {
			return Control{}, fmt.Errorf("%w: increment %q: %v", ErrControl, inc_str, err)
		}

		tc.Increment = time.Millisecond * time.Duration(incs*1000)
	}

	if kind != "" {
		tc.Kind = Kind(kind)
	}

	if tc.Kind == Untimed {
		tc = Control{Kind: Untimed}
	}

	return tc, tc.Validate()
}
