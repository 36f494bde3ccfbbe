package middleware

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// *usecase.Identity
const CtxIdentityKey = "identity"

var errNoBearer = errors.New("bearer token missing")

// AuthJWT はbearerトークンから呼び出し元（sub, tv）を取り出す。
// ロールはトークンを信用せず、AdminGuardでストアから引く。
func AuthJWT(secret string) echo.MiddlewareFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("log in"))
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("log in"))
			}

			id, err := identityFromClaims(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("log in"))
			}

			c.Set(CtxIdentityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom はAuthJWTが入れた呼び出し元を返す。
func IdentityFrom(c echo.Context) (*usecase.Identity, bool) {
	id, ok := c.Get(CtxIdentityKey).(*usecase.Identity)
	return id, ok && id != nil
}

// "Bearer <token>"
func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errNoBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errNoBearer
	}
	return token, nil
}

func identityFromClaims(claims jwt.MapClaims) (*usecase.Identity, error) {
	sub, err := claimInt(claims, "sub")
	if err != nil || sub <= 0 {
		return nil, errors.New("invalid sub")
	}
	tv, err := claimInt(claims, "tv")
	if err != nil || tv < 0 || tv > math.MaxInt32 {
		return nil, errors.New("invalid tv")
	}
	return &usecase.Identity{UserID: sub, TokenVersion: int(tv)}, nil
}

// JSONの数値はfloat64、文字列のsubも許す
func claimInt(claims jwt.MapClaims, key string) (int64, error) {
	switch v := claims[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s is not an integer", key)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("%s missing", key)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
