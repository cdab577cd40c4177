package authware

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/goliatone/go-router"
)

// fakeContext implements router.Context for handler tests.
type fakeContext struct {
	path           string
	method         string
	referer        string
	headers        map[string]string
	cookies        map[string]string
	setCookies     []*router.Cookie
	locals         map[any]any
	ctx            context.Context
	nextCalled     bool
	redirectedTo   string
	redirectStatus int
	jsonStatus     int
	jsonBody       any
	status         int
	bind           func(any) error
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		headers: map[string]string{},
		cookies: map[string]string{},
		locals:  map[any]any{},
		ctx:     context.Background(),
	}
}

func (f *fakeContext) Next() error {
	f.nextCalled = true
	return nil
}

func (f *fakeContext) Context() context.Context        { return f.ctx }
func (f *fakeContext) SetContext(ctx context.Context)  { f.ctx = ctx }
func (f *fakeContext) Path() string                    { return f.path }
func (f *fakeContext) Method() string                  { return f.method }
func (f *fakeContext) Body() []byte                    { return nil }
func (f *fakeContext) SendString(s string) error       { return nil }
func (f *fakeContext) Send(b []byte) error             { return nil }
func (f *fakeContext) SendStatus(code int) error       { f.status = code; return nil }
func (f *fakeContext) NoContent(code int) error        { f.status = code; return nil }
func (f *fakeContext) OriginalURL() string             { return f.path }
func (f *fakeContext) OnNext(callback func() error)    {}
func (f *fakeContext) Referer() string                 { return f.referer }
func (f *fakeContext) Set(key string, val any)         {}
func (f *fakeContext) Queries() map[string]string      { return nil }
func (f *fakeContext) CookieParser(i any) error        { return nil }
func (f *fakeContext) BindXML(i any) error             { return nil }
func (f *fakeContext) BindQuery(i any) error           { return nil }
func (f *fakeContext) Get(key string, def any) any     { return def }
func (f *fakeContext) GetBool(key string, d bool) bool { return d }
func (f *fakeContext) GetInt(key string, d int) int    { return d }

func (f *fakeContext) Bind(i any) error {
	if f.bind != nil {
		return f.bind(i)
	}
	return nil
}

func (f *fakeContext) Status(code int) router.Context {
	f.status = code
	return f
}

func (f *fakeContext) JSON(code int, val any) error {
	f.jsonStatus = code
	f.jsonBody = val
	return nil
}

func (f *fakeContext) Render(name string, bind any, layout ...string) error { return nil }

func (f *fakeContext) Redirect(path string, status ...int) error {
	f.redirectedTo = path
	if len(status) > 0 {
		f.redirectStatus = status[0]
	}
	return nil
}

func (f *fakeContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (f *fakeContext) RedirectBack(fallback string, status ...int) error { return nil }

func (f *fakeContext) SetHeader(key, val string) router.Context {
	f.headers[key] = val
	return f
}

func (f *fakeContext) Header(key string) string { return f.headers[key] }

func (f *fakeContext) Cookie(cookie *router.Cookie) {
	f.setCookies = append(f.setCookies, cookie)
}

func (f *fakeContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := f.cookies[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (f *fakeContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (f *fakeContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (f *fakeContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (f *fakeContext) QueryInt(key string, defaultValue int) int { return defaultValue }

func (f *fakeContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (f *fakeContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (f *fakeContext) GetString(key string, defaultValue string) string { return defaultValue }

func (f *fakeContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		f.locals[key] = value[0]
		return nil
	}
	return f.locals[key]
}

func (f *fakeContext) IP() string { return "" }

func (f *fakeContext) QueryValues(name string) []string { return nil }

func (f *fakeContext) LocalsMerge(key any, value map[string]any) map[string]any { return value }

func (f *fakeContext) SendStream(r io.Reader) error { return nil }

func (f *fakeContext) RouteName() string { return "" }

func (f *fakeContext) RouteParams() map[string]string { return nil }
