package handlers

import (
	"fmt"
	"io"
	"net/http"

	"ai.lyftr.inbox/internal/service/ingest"
	"github.com/labstack/echo/v4"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Signature"

type IngestService interface {
	Ingest(body []byte, providedSignature string) ingest.Result
}

// Webhook accepts signed inbound messages. The body bytes are read raw
// before any parsing: they are exactly what the producer signed.
func Webhook(service IngestService) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := c.Request().Body
		defer body.Close()

		rawRequest, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}

		result := service.Ingest(rawRequest, c.Request().Header.Get(SignatureHeader))
		switch result.Kind {
		case ingest.ResultInvalidSignature:
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid signature"})
		case ingest.ResultMalformedPayload, ingest.ResultValidationFailed:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": result.Detail})
		case ingest.ResultStorageError:
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "internal server error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
