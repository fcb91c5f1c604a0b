package service

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	MIMEApplicationMsgpack = "application/msgpack"
	MIMEApplicationCBOR    = "application/cbor"
)

// render writes v in the first format the client accepts. JSON carries
// []byte fields as base64 text; msgpack and CBOR carry them as raw bytes.
func render(c echo.Context, status int, v any) error {
	accept := c.Request().Header.Get(echo.HeaderAccept)

	switch {
	case strings.Contains(accept, MIMEApplicationMsgpack), strings.Contains(accept, "application/x-msgpack"):
		b, err := msgpack.Marshal(v)
		if err != nil {
			return fmt.Errorf("msgpack encode: %w", err)
		}
		return c.Blob(status, MIMEApplicationMsgpack, b)
	case strings.Contains(accept, MIMEApplicationCBOR):
		b, err := cbor.Marshal(v)
		if err != nil {
			return fmt.Errorf("cbor encode: %w", err)
		}
		return c.Blob(status, MIMEApplicationCBOR, b)
	default:
		return c.JSON(status, v)
	}
}
