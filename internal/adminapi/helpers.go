package adminapi

import (
	stdjson "encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/protechlab/labdesk/internal/app"
	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/webserver"
	"github.com/protechlab/labdesk/pkg/common"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

var bodyJSON = jsoniter.Config{UseNumber: true}.Froze()

// Response single record envelope
type Response struct {
	Data interface{} `json:"data"`
}

// ListResponse paginated envelope
type ListResponse struct {
	Data interface{} `json:"data"`
	Meta PageMeta    `json:"meta"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// CreatedResponse is returned by every create endpoint
type CreatedResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: data, Meta: PageMeta{Total: total, Page: page, PageSize: pageSize}})
}

func created(c echo.Context, id int64) error {
	return c.JSON(http.StatusCreated, CreatedResponse{Success: true, ID: id})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, webserver.ErrorResponse{Error: message, Code: code, Details: details})
}

// failErr maps a classified error to its status. Internal causes are logged
// and replaced by a generic message.
func failErr(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation, domain.KindNoOpUpdate:
		return fail(c, http.StatusBadRequest, strings.ToUpper(kind.String()), domain.MessageOf(err), nil)
	case domain.KindUnauthorized:
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", domain.MessageOf(err), nil)
	case domain.KindNotFound:
		return fail(c, http.StatusNotFound, "NOT_FOUND", domain.MessageOf(err), nil)
	case domain.KindConflict:
		return fail(c, http.StatusConflict, "CONFLICT", domain.MessageOf(err), nil)
	case domain.KindStoreUnavailable:
		zap.L().Error("database error", zap.String("path", c.Path()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", domain.MessageOf(err), nil)
	default:
		zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func parsePagination(c echo.Context) (int, int) {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize := cast.ToInt(c.QueryParam("page_size"))
	if pageSize < 1 {
		pageSize = cast.ToInt(c.QueryParam("perPage"))
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func invalidID(c echo.Context, entity string) error {
	return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid "+entity+" id", nil)
}

// queryInt64 returns nil for an absent parameter and a validation error for
// a malformed one.
func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.ValidationError("invalid %s", name)
	}
	return &v, nil
}

func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := common.ParseDate(raw)
	if err != nil {
		return nil, domain.ValidationError("invalid %s", name)
	}
	return &t, nil
}

func queryBool(c echo.Context, names ...string) bool {
	for _, name := range names {
		if cast.ToBool(c.QueryParam(name)) {
			return true
		}
	}
	return false
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// bindPayload decodes the JSON body into out and also returns the raw map,
// so callers can tell an absent key from an explicit null.
func bindPayload(c echo.Context, out interface{}) (map[string]interface{}, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, domain.ValidationError("unable to read request body")
	}
	raw := map[string]interface{}{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := bodyJSON.Unmarshal(body, &raw); err != nil {
			return nil, domain.ValidationError("request body must be a JSON object")
		}
	}
	if err := decodeFields(raw, out); err != nil {
		return nil, err
	}
	if err := c.Validate(out); err != nil {
		return nil, domain.ValidationError("%s", validationMessage(err))
	}
	return raw, nil
}

func decodeFields(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			dateHook,
		),
	})
	if err != nil {
		return errors.Wrap(err, "payload decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return domain.ValidationError("%s", cleanDecodeError(err))
	}
	return nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func decimalHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case stdjson.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case interface{ String() string }:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
}

func dateHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		return common.ParseDate(s)
	}
	return data, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid ("+fe.Tag()+")")
		}
	}
	return strings.Join(msgs, "; ")
}

func cleanDecodeError(err error) string {
	var me *mapstructure.Error
	if errors.As(err, &me) && len(me.Errors) > 0 {
		return strings.Join(me.Errors, "; ")
	}
	return err.Error()
}

// has reports whether the body carried key, null included.
func has(raw map[string]interface{}, key string) bool {
	_, ok := raw[key]
	return ok
}

// flag reads a boolean body flag under any of its aliases.
func flag(raw map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil && cast.ToBool(v) {
			return true
		}
	}
	return false
}

// setString copies a present string key into the update map.
func setString(fields map[string]interface{}, raw map[string]interface{}, key string, val *string) {
	if has(raw, key) {
		if val == nil {
			fields[key] = ""
		} else {
			fields[key] = strings.TrimSpace(*val)
		}
	}
}

// requireFields rejects a create body missing any of keys. Null, blank and
// "N/A" strings count as missing.
func requireFields(raw map[string]interface{}, keys ...string) error {
	var missing []string
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isStr := v.(string); isStr && common.IsEmptyOrNA(s) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return domain.ValidationError("required fields missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// publish hands a domain event to the subscribers once the handler's own
// writes are done.
func publish(c echo.Context, topic string, event interface{}) {
	bus := GetAppContext(c).Bus()
	if bus == nil {
		return
	}
	bus.Publish(topic, event)
}
