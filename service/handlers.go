package service

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/presbrey/b64/base64"
	"github.com/presbrey/b64/logging"
)

type encodeRequest struct {
	Data     string `json:"data"`
	Alphabet string `json:"alphabet" validate:"omitempty,oneof=standard std url urlsafe url-safe url_safe base64url"`
	Padding  *bool  `json:"padding"`
}

type encodeResponse struct {
	Encoded  string `json:"encoded" msgpack:"encoded" cbor:"encoded"`
	Alphabet string `json:"alphabet" msgpack:"alphabet" cbor:"alphabet"`
	Length   int    `json:"length" msgpack:"length" cbor:"length"`
}

type decodeRequest struct {
	Encoded  string `json:"encoded"`
	Alphabet string `json:"alphabet" validate:"omitempty,oneof=standard std url urlsafe url-safe url_safe base64url"`
}

type decodeResponse struct {
	Decoded  []byte `json:"decoded" msgpack:"decoded" cbor:"decoded"`
	Alphabet string `json:"alphabet" msgpack:"alphabet" cbor:"alphabet"`
	Length   int    `json:"length" msgpack:"length" cbor:"length"`
}

type errorResponse struct {
	Error  string `json:"error" msgpack:"error" cbor:"error"`
	Offset *int   `json:"offset,omitempty" msgpack:"offset,omitempty" cbor:"offset,omitempty"`
}

func (s *Server) handleEncode(c echo.Context) error {
	var req encodeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	codec, err := s.codecFor(req.Alphabet, req.Padding)
	if err != nil {
		return err
	}

	encoded, err := codec.Encode([]byte(req.Data))
	s.metrics.observe("encode", codec.Alphabet(), len(req.Data), len(encoded), err)
	if err != nil {
		return s.codecError(c, err)
	}

	return render(c, http.StatusOK, encodeResponse{
		Encoded:  encoded,
		Alphabet: codec.Alphabet().String(),
		Length:   len(encoded),
	})
}

func (s *Server) handleDecode(c echo.Context) error {
	var req decodeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	codec, err := s.codecFor(req.Alphabet, nil)
	if err != nil {
		return err
	}

	decoded, err := codec.Decode(req.Encoded)
	s.metrics.observe("decode", codec.Alphabet(), len(req.Encoded), len(decoded), err)
	if err != nil {
		return s.codecError(c, err)
	}

	return render(c, http.StatusOK, decodeResponse{
		Decoded:  decoded,
		Alphabet: codec.Alphabet().String(),
		Length:   len(decoded),
	})
}

func (s *Server) handleEncodeRaw(c echo.Context) error {
	padding, err := queryBool(c, "padding")
	if err != nil {
		return err
	}
	codec, err := s.codecFor(c.QueryParam("alphabet"), padding)
	if err != nil {
		return err
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}

	encoded, err := codec.Encode(body)
	s.metrics.observe("encode", codec.Alphabet(), len(body), len(encoded), err)
	if err != nil {
		return s.codecError(c, err)
	}
	return c.String(http.StatusOK, encoded)
}

func (s *Server) handleDecodeRaw(c echo.Context) error {
	codec, err := s.codecFor(c.QueryParam("alphabet"), nil)
	if err != nil {
		return err
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	text := strings.TrimRight(string(body), "\r\n")

	decoded, err := codec.Decode(text)
	s.metrics.observe("decode", codec.Alphabet(), len(text), len(decoded), err)
	if err != nil {
		return s.codecError(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, decoded)
}

// codecFor derives the request codec from the server default
func (s *Server) codecFor(alphabet string, padding *bool) (base64.Codec, error) {
	codec := s.opts.Codec
	if alphabet != "" {
		a, err := base64.ParseAlphabet(alphabet)
		if err != nil {
			return codec, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		codec = codec.WithAlphabet(a)
	}
	if padding != nil {
		codec = codec.WithPadding(*padding)
	}
	return codec, nil
}

// codecError maps codec failures onto HTTP responses
func (s *Server) codecError(c echo.Context, err error) error {
	var decErr *base64.DecodeError
	switch {
	case errors.As(err, &decErr):
		offset := decErr.Offset
		s.log.Debug("rejected input", logging.Fields{"error": err.Error(), "offset": offset})
		return render(c, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Offset: &offset})
	case errors.Is(err, base64.ErrAllocation):
		s.log.Error("allocation failed", logging.Fields{"error": err.Error()})
		return render(c, http.StatusInsufficientStorage, errorResponse{Error: err.Error()})
	default:
		return err
	}
}

// bind decodes and validates a JSON body
func (s *Server) bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		if tooLarge(err) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge).SetInternal(err)
		}
		return err
	}
	return c.Validate(v)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		if tooLarge(err) {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge).SetInternal(err)
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read body").SetInternal(err)
	}
	return body, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+": "+err.Error())
	}
	return &v, nil
}
