package trigger

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/pkg/httpclient"
	"github.com/tastebud/tastebud-api/pkg/logger"
)

const userAgent = "tastebud-api-trigger/1.0"

// CallAsync notifies a trigger URL that a visit was recorded, appending the
// visit ID to the configured URL. Downstream consumers (badge awards,
// activity feeds) poll or react on their side. The call runs in a goroutine
// and failures are logged, never surfaced to the diner.
func CallAsync(triggerURL, visitID string, httpClient httpclient.Client) {
	if triggerURL == "" {
		return
	}

	go func() {
		targetURL := triggerURL + visitID

		req, err := http.NewRequest(http.MethodGet, targetURL, nil)
		if err != nil {
			logger.Error("Failed to build trigger request",
				zap.Error(err),
				zap.String("url", targetURL))
			return
		}
		req.Header.Set("User-Agent", userAgent)

		logger.Info("Calling trigger URL",
			zap.String("url", targetURL),
			zap.String("visit_id", visitID))

		resp, err := httpClient.Do(req)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.String("visit_id", visitID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("url", targetURL),
				zap.String("visit_id", visitID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", targetURL),
				zap.String("visit_id", visitID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()
}
