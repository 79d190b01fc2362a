// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	clientLog    = commonlog.GetLogger("rtbridge.client")
	serverLog    = commonlog.GetLogger("rtbridge.server")
	transportLog = commonlog.GetLogger("rtbridge.transport")
)

// logFrame writes a frame to log at debug level. Frames are only rendered
// when debug output is enabled.
func logFrame(log commonlog.Logger, dir string, frame []byte) {
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("%s %s", dir, frame)
	}
}
