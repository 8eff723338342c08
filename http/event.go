package http

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/sjson"
)

// buildEvent renders the request as an API Gateway HTTP API (payload 2.0) event.
func buildEvent(c *gin.Context, route Route, requestID string, now time.Time) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	event := `{"version":"2.0"}`
	set := func(path string, value any) {
		if err != nil {
			return
		}
		event, err = sjson.Set(event, path, value)
	}

	set("routeKey", route.RouteKey())
	set("rawPath", c.Request.URL.Path)
	set("rawQueryString", c.Request.URL.RawQuery)
	if cookies := c.Request.Header.Values("Cookie"); len(cookies) > 0 {
		set("cookies", splitCookies(cookies))
	}
	set("headers", normalizeHeaders(c.Request.Header, c.Request.Host))
	if query := c.Request.URL.Query(); len(query) > 0 {
		params := map[string]string{}
		for k, v := range query {
			params[k] = strings.Join(v, ",")
		}
		set("queryStringParameters", params)
	}
	if len(c.Params) > 0 {
		params := map[string]string{}
		for _, p := range c.Params {
			params[p.Key] = strings.TrimPrefix(p.Value, "/")
		}
		set("pathParameters", params)
	}

	set("requestContext.accountId", "offlineContext_accountId")
	set("requestContext.apiId", "offlineContext_apiId")
	set("requestContext.domainName", c.Request.Host)
	set("requestContext.http.method", c.Request.Method)
	set("requestContext.http.path", c.Request.URL.Path)
	set("requestContext.http.protocol", c.Request.Proto)
	set("requestContext.http.sourceIp", c.ClientIP())
	set("requestContext.http.userAgent", c.Request.UserAgent())
	set("requestContext.requestId", requestID)
	set("requestContext.routeKey", route.RouteKey())
	set("requestContext.stage", "$default")
	set("requestContext.time", now.UTC().Format("02/Jan/2006:15:04:05 -0700"))
	set("requestContext.timeEpoch", now.UnixMilli())

	if len(body) > 0 {
		if utf8.Valid(body) {
			set("body", string(body))
			set("isBase64Encoded", false)
		} else {
			set("body", base64.StdEncoding.EncodeToString(body))
			set("isBase64Encoded", true)
		}
	} else {
		set("isBase64Encoded", false)
	}

	if err != nil {
		return nil, err
	}
	return []byte(event), nil
}

// normalizeHeaders lowercases names and joins repeated values with ", ".
func normalizeHeaders(h http.Header, host string) map[string]string {
	out := make(map[string]string, len(h)+1)
	for k, v := range h {
		if strings.EqualFold(k, "Cookie") {
			continue
		}
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	if host != "" {
		out["host"] = host
	}
	return out
}

func splitCookies(values []string) []string {
	var cookies []string
	for _, v := range values {
		for _, part := range strings.Split(v, ";") {
			if part = strings.TrimSpace(part); part != "" {
				cookies = append(cookies, part)
			}
		}
	}
	return cookies
}
