package transport

import (
	"context"
	"encoding/json"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/pkg/bits"
	"go.uber.org/zap"
)

// logTransport writes every report to the log. It has no host output.
type logTransport struct {
	log *zap.Logger
}

func newLogTransport(_ json.RawMessage, p Provider) (Transport, error) {
	return &logTransport{log: p.Log.Named("transport.log")}, nil
}

func (t *logTransport) SendKeyboard(report hidreport.KeyboardReport) error {
	t.log.Info("Keyboard report", zap.Uint8("mods", report.Mods), zap.Binary("keys", report.Keys[:]))
	return nil
}

func (t *logTransport) SendNKRO(report hidreport.NKROReport) error {
	t.log.Info("NKRO report", zap.Uint8("mods", report.Mods), zap.Stringer("bits", bits.New(report.Bits[:], 0)))
	return nil
}

func (t *logTransport) SendExtra(report hidreport.ExtraReport) error {
	t.log.Info("Extra report", zap.Uint8("reportId", report.ReportID), zap.Uint16("usage", report.Usage))
	return nil
}

func (t *logTransport) SendRaw(packet hidreport.RawPacket) error {
	t.log.Debug("Raw packet", zap.Binary("data", packet[:]))
	return nil
}

func (t *logTransport) Run(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (t *logTransport) Close() error {
	return nil
}
