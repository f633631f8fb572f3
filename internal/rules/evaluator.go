package rules

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pondokrejo/desa-monitor/internal/types"
)

// Fixed thresholds. Values exactly at a bracket edge (water level 30 or
// 50, smoke level 30) fall between brackets and raise nothing; that
// behavior is pinned by the dashboard operators and must not change.
const (
	waterLevelCritical = 30.0
	waterLevelLow      = 50.0
	powerHigh          = 5000.0
	smokeDanger        = 50.0
	smokeWarning       = 30.0
	temperatureHigh    = 35.0
)

// Evaluator maps one reading to zero or more alert drafts. It is pure:
// the only inputs are the payload, the clock value passed in, and the
// options fixed at construction.
type Evaluator struct {
	opts Options
}

func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Evaluate runs every rule for the payload's sensor type. Independent
// rules append independently, so one motion reading can produce both a
// watch-room and an after-hours alert.
func (e *Evaluator) Evaluate(p *types.ReadingPayload, now time.Time) []types.AlertDraft {
	var drafts []types.AlertDraft

	switch types.SensorType(p.SensorType) {
	case types.SensorWaterLevel:
		drafts = e.waterLevel(p, drafts)
	case types.SensorElectricity:
		drafts = e.electricity(p, drafts)
	case types.SensorSmoke:
		drafts = e.smoke(p, drafts)
	case types.SensorDHT:
		drafts = e.temperature(p, drafts)
	case types.SensorIRDetector:
		drafts = e.motion(p, now, drafts)
	case types.SensorRain:
		drafts = e.rain(p, drafts)
	}

	return drafts
}

func (e *Evaluator) waterLevel(p *types.ReadingPayload, drafts []types.AlertDraft) []types.AlertDraft {
	if p.WaterLevel == nil {
		return drafts
	}

	level := *p.WaterLevel
	switch {
	case level < waterLevelCritical:
		drafts = append(drafts, types.AlertDraft{
			Title:      "Ketinggian Air Kritis",
			Message:    fmt.Sprintf("Tandon air mencapai %s%%, segera isi ulang!", num(level)),
			AlertType:  types.AlertDanger,
			SensorType: types.SensorWaterLevel,
		})
	case level < waterLevelLow && level > waterLevelCritical:
		drafts = append(drafts, types.AlertDraft{
			Title:      "Ketinggian Air Rendah",
			Message:    fmt.Sprintf("Tandon air mencapai %s%%, pertimbangkan untuk mengisi", num(level)),
			AlertType:  types.AlertWarning,
			SensorType: types.SensorWaterLevel,
		})
	}

	return drafts
}

func (e *Evaluator) electricity(p *types.ReadingPayload, drafts []types.AlertDraft) []types.AlertDraft {
	if p.Power == nil || *p.Power <= powerHigh {
		return drafts
	}

	return append(drafts, types.AlertDraft{
		Title:      "Daya Listrik Tinggi",
		Message:    fmt.Sprintf("Penggunaan daya mencapai %sW, perhatikan beban", num(*p.Power)),
		AlertType:  types.AlertWarning,
		SensorType: types.SensorElectricity,
	})
}

func (e *Evaluator) smoke(p *types.ReadingPayload, drafts []types.AlertDraft) []types.AlertDraft {
	if p.SmokeLevel == nil {
		return drafts
	}

	level := *p.SmokeLevel
	switch {
	case level > smokeDanger:
		drafts = append(drafts, types.AlertDraft{
			Title:      "Terdeteksi Asap Tinggi",
			Message:    fmt.Sprintf("Level asap mencapai %s, waspadai bahaya kebakaran!", num(level)),
			AlertType:  types.AlertDanger,
			SensorType: types.SensorSmoke,
		})
	case level > smokeWarning:
		drafts = append(drafts, types.AlertDraft{
			Title:      "Terdeteksi Asap",
			Message:    fmt.Sprintf("Level asap mencapai %s, periksa area sekitar", num(level)),
			AlertType:  types.AlertWarning,
			SensorType: types.SensorSmoke,
		})
	}

	return drafts
}

func (e *Evaluator) temperature(p *types.ReadingPayload, drafts []types.AlertDraft) []types.AlertDraft {
	if p.Temperature == nil || *p.Temperature <= temperatureHigh {
		return drafts
	}

	return append(drafts, types.AlertDraft{
		Title:      "Suhu Tinggi",
		Message:    fmt.Sprintf("Suhu mencapai %s°C, pastikan ventilasi baik", num(*p.Temperature)),
		AlertType:  types.AlertWarning,
		SensorType: types.SensorDHT,
	})
}

func (e *Evaluator) motion(p *types.ReadingPayload, now time.Time, drafts []types.AlertDraft) []types.AlertDraft {
	if p.Detected == nil || !*p.Detected {
		return drafts
	}

	if p.Room != nil && e.isWatchRoom(*p.Room) {
		drafts = append(drafts, types.AlertDraft{
			Title:      fmt.Sprintf("Aktivitas di %s", *p.Room),
			Message:    fmt.Sprintf("Sensor IR mendeteksi gerakan di %s", *p.Room),
			AlertType:  types.AlertInfo,
			SensorType: types.SensorIRDetector,
		})
	}

	hour := now.Hour()
	if hour >= e.opts.AfterHoursStart || hour <= e.opts.AfterHoursEnd {
		drafts = append(drafts, types.AlertDraft{
			Title:      "Aktivitas di Luar Jam Kerja",
			Message:    "Terdeteksi aktivitas pada jam off kantor",
			AlertType:  types.AlertInfo,
			SensorType: types.SensorIRDetector,
		})
	}

	return drafts
}

func (e *Evaluator) rain(p *types.ReadingPayload, drafts []types.AlertDraft) []types.AlertDraft {
	if p.IsRaining == nil || !*p.IsRaining {
		return drafts
	}
	if p.RainIntensity == nil || *p.RainIntensity != types.RainHeavy {
		return drafts
	}

	return append(drafts, types.AlertDraft{
		Title:      "Hujan Lebat",
		Message:    "Terdeteksi hujan lebat, waspada potensi banjir",
		AlertType:  types.AlertWarning,
		SensorType: types.SensorRain,
	})
}

func (e *Evaluator) isWatchRoom(room string) bool {
	for _, r := range e.opts.WatchRooms {
		if r == room {
			return true
		}
	}
	return false
}

// num renders thresholds the way the dashboard shows them: no trailing
// zeros, 22 not 22.0.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
