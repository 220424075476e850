// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
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

package util

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
)

const SPIN = 31

var working = spinner.New(
	spinner.CharSets[SPIN], 100*time.Millisecond,
	spinner.WithWriter(os.Stderr),
)

// StartSpinner starts the ~working~ spinner with the given suffix. The
// spinner stays quiet when debug output is enabled, so that it doesn't
// garble the logs.
func StartSpinner(suffix string) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	working.Suffix = " " + suffix
	working.Start()
}

// UpdateSpinner changes the suffix shown by the spinner.
func UpdateSpinner(suffix string) {
	working.Lock()
	working.Suffix = " " + suffix
	working.Unlock()
}

// PauseSpinner stops the ~working~ spinner.
func PauseSpinner() {
	working.Stop()
}
