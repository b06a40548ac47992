// wdmxd is a diagnostic wireless DMX receiver daemon. It locks onto a
// transmitter, keeps the universe buffer current, and serves the receiver's
// diagnostics over HTTP: Prometheus metrics on /metrics, a JSON summary on
// /status, captured raw frames on /capture, and the live universe on
// /universe.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stagelink/wdmxrx/driver/sim"
	"github.com/stagelink/wdmxrx/protocol"
	"github.com/stagelink/wdmxrx/transport"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	unitID, err := protocol.ParseUnitID(cfg.UnitID)
	if err != nil {
		logger.Fatal("Bad unit_id", zap.String("unit_id", cfg.UnitID), zap.Error(err))
	}

	simID, err := protocol.ParseUnitID(cfg.Sim.UnitID)
	if err != nil || !simID.Valid() {
		logger.Fatal("Bad sim.unit_id", zap.String("unit_id", cfg.Sim.UnitID))
	}

	drv := sim.New(cfg.Sim.Channel, simID)
	drv.SetFrameInterval(cfg.Sim.FrameInterval)

	receiver := transport.NewReceiver(drv, logger)
	if cfg.Capture {
		receiver.StartCapture()
	}
	registerMetrics(receiver)

	go func() {
		probes := 0
		progress := func() {
			probes++
			if probes%protocol.NumChannels == 0 {
				logger.Info("Scanning for transmitter", zap.Int("probes", probes))
			}
		}
		// Blocks until a transmitter is found; the receive loop then runs
		// for the life of the process.
		if err := receiver.Start(unitID, progress); err != nil {
			logger.Fatal("Receiver start failed", zap.Error(err))
		}
		logger.Info("Locked onto transmitter",
			zap.Uint8("channel", receiver.Channel()),
			zap.Stringer("unit", receiver.ID()))
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", statusHandler(receiver))
	mux.HandleFunc("/capture", captureHandler(receiver))
	mux.HandleFunc("/universe", universeHandler(receiver))

	logger.Info("wdmxd listening", zap.String("addr", cfg.Listen))
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

type statusResponse struct {
	Locked      bool   `json:"locked"`
	Channel     uint8  `json:"channel"`
	UnitID      string `json:"unit_id"`
	RxCount     uint64 `json:"rx_count"`
	RxInvalid   uint64 `json:"rx_invalid"`
	RxOverruns  uint64 `json:"rx_overruns"`
	RxSeqErrors uint64 `json:"rx_seq_errors"`
	LastRx      string `json:"last_rx,omitempty"`
}

func statusHandler(r *transport.Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := statusResponse{
			Locked:      r.Locked(),
			Channel:     r.Channel(),
			UnitID:      r.ID().String(),
			RxCount:     r.RxCount(),
			RxInvalid:   r.RxInvalid(),
			RxOverruns:  r.RxOverruns(),
			RxSeqErrors: r.RxSeqErrors(),
		}
		if t := r.LastRx(); !t.IsZero() {
			resp.LastRx = t.Format(time.RFC3339Nano)
		}
		writeJSON(w, resp)
	}
}

type capturedFrame struct {
	Magic          byte   `json:"magic"`
	PayloadID      byte   `json:"payload_id"`
	HighestChannel uint16 `json:"highest_channel"`
	Data           string `json:"data"`
}

func captureHandler(r *transport.Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		frames := r.DrainCapture()
		out := make([]capturedFrame, len(frames))
		for i, f := range frames {
			out[i] = capturedFrame{
				Magic:          f.Magic,
				PayloadID:      f.PayloadID,
				HighestChannel: f.HighestChannel,
				Data:           hex.EncodeToString(f.DMXData[:]),
			}
		}
		writeJSON(w, out)
	}
}

func universeHandler(r *transport.Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var buf [protocol.UniverseSize]byte
		r.Values(1, buf[:])
		writeJSON(w, map[string]string{"universe": hex.EncodeToString(buf[:])})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
