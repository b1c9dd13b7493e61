package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smena/internal/config"

	"github.com/rs/zerolog"
)

// AddressNotFound подставляется в отчеты, когда обратное геокодирование
// не дало результата. Отчет отправляется в любом случае.
const AddressNotFound = "Адрес не найден"

// NominatimGeocoder переводит координаты в адрес через Nominatim
// (reverse-запрос, lang=ru). Любая ошибка деградирует до заглушки.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	language  string
	client    *http.Client
	logger    *zerolog.Logger
}

func NewNominatimGeocoder(cfg config.GeocoderConfig, logger *zerolog.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		language:  cfg.Language,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		logger: logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ResolveAddress возвращает человекочитаемый адрес для координат
// или AddressNotFound, если сервис недоступен либо ничего не нашел.
func (g *NominatimGeocoder) ResolveAddress(ctx context.Context, latitude, longitude float64) string {
	reqURL := fmt.Sprintf("%s/reverse?%s", g.baseURL, url.Values{
		"lat":             {fmt.Sprintf("%f", latitude)},
		"lon":             {fmt.Sprintf("%f", longitude)},
		"format":          {"json"},
		"accept-language": {g.language},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		g.logger.Error().Err(err).Msg("Ошибка создания запроса геокодера")
		return AddressNotFound
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).
			Float64("latitude", latitude).
			Float64("longitude", longitude).
			Msg("Геокодер недоступен")
		return AddressNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn().Int("status", resp.StatusCode).Msg("Геокодер вернул ошибку")
		return AddressNotFound
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		g.logger.Warn().Err(err).Msg("Ошибка разбора ответа геокодера")
		return AddressNotFound
	}

	if decoded.Error != "" || decoded.DisplayName == "" {
		return AddressNotFound
	}

	return decoded.DisplayName
}
