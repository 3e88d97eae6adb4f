package preset

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	presetsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chunkloader_presets_stored",
		Help: "Number of presets currently held by the store",
	})
	presetsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunkloader_presets_saved_total",
		Help: "Total presets saved",
	})
	presetsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunkloader_presets_deleted_total",
		Help: "Total presets deleted",
	})
	decodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunkloader_preset_decode_failures_total",
		Help: "Times persisted presets could not be read and the store started empty",
	})
	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunkloader_preset_persist_failures_total",
		Help: "Backend writes of the preset collection that failed",
	})
)
