package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"energy-advisor/internal/config"
	"energy-advisor/internal/model"
)

// Conservative defaults used when a sub-result is missing upstream. They
// correspond to an unremarkable central-European site.
const (
	fallbackYearlyKwhPerKwp = 1000.0
	fallbackOptimalAngle    = 35.0
	fallbackWindSpeed       = 4.5
	fallbackYearAvgTemp     = 10.0
)

// DataAPIClient fetches solar, wind and climate aggregates from the
// environmental data API. The three endpoints are queried concurrently;
// each sub-result is independently optional and falls back to conservative
// defaults on failure.
type DataAPIClient struct {
	cfg        config.DataAPIConfig
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewDataAPIClient creates a technical-summary client.
func NewDataAPIClient(cfg config.DataAPIConfig, log *zap.SugaredLogger) *DataAPIClient {
	return &DataAPIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

var _ TechnicalSource = (*DataAPIClient)(nil)

type solarResponse struct {
	YearlyKwhPerKwp float64 `json:"yearly_kwh_per_kwp"`
	OptimalTiltDeg  float64 `json:"optimal_tilt_deg"`
}

type windResponse struct {
	MeanSpeed float64 `json:"mean_speed"`
}

type climateResponse struct {
	YearAverageTemp float64 `json:"year_average_temp"`
}

// Summary fetches the technical data for a coordinate. It never fails
// outright: sub-fetches that error are replaced with defaults, logged, and
// the merged result is returned.
func (c *DataAPIClient) Summary(ctx context.Context, lat, lon float64) (*model.TechnicalData, error) {
	data := &model.TechnicalData{
		SolarResource: model.SolarResource{
			YearlyKwhPerKwp: fallbackYearlyKwhPerKwp,
			OptimalAngle:    fallbackOptimalAngle,
		},
		Wind:    model.WindData{AverageSpeed: fallbackWindSpeed},
		Climate: model.ClimateData{YearAverageTemp: fallbackYearAvgTemp},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var solar solarResponse
		if err := c.fetch(gctx, "solar", lat, lon, &solar); err != nil {
			c.log.Warnw("solar resource unavailable, using defaults", "error", err)
			return nil
		}
		if solar.YearlyKwhPerKwp > 0 {
			data.SolarResource.YearlyKwhPerKwp = solar.YearlyKwhPerKwp
		}
		if solar.OptimalTiltDeg > 0 {
			data.SolarResource.OptimalAngle = solar.OptimalTiltDeg
		}
		return nil
	})

	g.Go(func() error {
		var wind windResponse
		if err := c.fetch(gctx, "wind", lat, lon, &wind); err != nil {
			c.log.Warnw("wind data unavailable, using defaults", "error", err)
			return nil
		}
		if wind.MeanSpeed > 0 {
			data.Wind.AverageSpeed = wind.MeanSpeed
		}
		return nil
	})

	g.Go(func() error {
		var climate climateResponse
		if err := c.fetch(gctx, "climate", lat, lon, &climate); err != nil {
			c.log.Warnw("climate data unavailable, using defaults", "error", err)
			return nil
		}
		if climate.YearAverageTemp != 0 {
			data.Climate.YearAverageTemp = climate.YearAverageTemp
		}
		return nil
	})

	// Sub-fetches swallow their own errors, so Wait only reports a
	// cancelled context; the partially filled defaults are still usable.
	_ = g.Wait()
	return data, nil
}

func (c *DataAPIClient) fetch(ctx context.Context, path string, lat, lon float64, target interface{}) error {
	endpoint := fmt.Sprintf("%s/%s?lat=%f&lon=%f", strings.TrimSuffix(c.cfg.APIBase, "/"), path, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("data API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
