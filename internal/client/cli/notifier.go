package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/platform"
	"github.com/iudanet/winelog/internal/wizard"
)

// ioNotifier prints alerts of the wizard and plays a heavy haptic
type ioNotifier struct {
	io     iocli.IO
	caps   platform.Capabilities
	logger *zap.Logger
}

var _ wizard.Notifier = (*ioNotifier)(nil)

func (n *ioNotifier) Alert(msg string) {
	n.io.Println()
	n.io.Println("⚠️  " + msg)
	if n.caps == nil {
		return
	}
	if err := n.caps.Haptic(context.Background(), platform.HapticHeavy); err != nil {
		n.logger.Debug("haptic unavailable", zap.Error(err))
	}
}
