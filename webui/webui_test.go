package webui

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controlsStub struct {
	mode    settings.DisplayMode
	splash  int
	names   []string
	redraws int
	calls   int
}

func (c *controlsStub) DisplayMode() settings.DisplayMode {
	c.calls++
	return c.mode
}

func (c *controlsStub) SetDisplayMode(m settings.DisplayMode) error {
	c.calls++
	c.mode = m
	return nil
}

func (c *controlsStub) ToggleDisplayMode() (settings.DisplayMode, error) {
	c.calls++
	c.mode = 1 - c.mode
	c.redraws++
	return c.mode, nil
}

func (c *controlsStub) SplashName() string {
	c.calls++
	return c.names[c.splash]
}

func (c *controlsStub) NextSplash() (string, error) {
	c.calls++
	c.splash = (c.splash + 1) % len(c.names)
	return c.names[c.splash], nil
}

func (c *controlsStub) Info() string {
	c.calls++
	return "Mazduino Display vtest\n"
}

type installerStub struct {
	image    []byte
	err      error
	restarts int
}

func (i *installerStub) Install(r io.Reader) error {
	if i.err != nil {
		return i.err
	}
	b, err := io.ReadAll(r)
	i.image = b
	return err
}

func (i *installerStub) Restart() error {
	i.restarts++
	return nil
}

func newTestServer(t *testing.T) (*Server, *controlsStub, *installerStub) {
	controls := &controlsStub{
		mode:  settings.ShowRefreshRate,
		names: []string{"ZetTech ECU", "Mazduino ECU", "Speeduino ECU"},
	}
	inst := &installerStub{}
	s := NewServer("127.0.0.1:0", controls, inst)
	require.NoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })
	return s, controls, inst
}

// serve runs the request while ticking the server, the way the main loop
// services it.
func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.Router().ServeHTTP(w, req)
		close(done)
	}()
	for {
		select {
		case <-done:
			return w
		default:
			s.Tick()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestRoot(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="firmware"`)
}

func TestDisplayMode(t *testing.T) {
	s, controls, _ := newTestServer(t)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/displaymode", nil))
	assert.Equal(t, "FPS", w.Body.String())

	w = serve(s, httptest.NewRequest(http.MethodPost, "/displaymode", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FP", w.Body.String())
	assert.Equal(t, 1, controls.redraws)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/displaymode", nil))
	assert.Equal(t, "FP", w.Body.String())
}

func TestToggle(t *testing.T) {
	s, controls, _ := newTestServer(t)

	for _, tc := range []struct {
		body string
		mode settings.DisplayMode
	}{
		{"off", settings.ShowFuelPressure},
		{"garbage", settings.ShowFuelPressure},
		{"on", settings.ShowRefreshRate},
		{"", settings.ShowRefreshRate},
	} {
		w := serve(s, httptest.NewRequest(http.MethodPost, "/toggle", strings.NewReader(tc.body)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
		assert.Equal(t, tc.mode, controls.mode, "body %q", tc.body)
	}
}

func TestSplash(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/splash", nil))
	assert.Equal(t, "ZetTech ECU", w.Body.String())

	w = serve(s, httptest.NewRequest(http.MethodPost, "/splash", nil))
	assert.Equal(t, "Mazduino ECU", w.Body.String())
	w = serve(s, httptest.NewRequest(http.MethodPost, "/splash", nil))
	assert.Equal(t, "Speeduino ECU", w.Body.String())
	w = serve(s, httptest.NewRequest(http.MethodPost, "/splash", nil))
	assert.Equal(t, "ZetTech ECU", w.Body.String())
}

func TestInfo(t *testing.T) {
	s, _, _ := newTestServer(t)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Mazduino Display"))
}

func TestMethodGating(t *testing.T) {
	s, controls, _ := newTestServer(t)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/toggle", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, controls.calls)
}

func uploadRequest(t *testing.T, image []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("firmware", "display.bin")
	require.NoError(t, err)
	_, err = fw.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/update", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpdate(t *testing.T) {
	s, _, inst := newTestServer(t)
	image := []byte("\x7fELF new image")

	w := serve(s, uploadRequest(t, image))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgUpdateOK, w.Body.String())
	assert.Equal(t, image, inst.image)
	assert.Equal(t, 1, inst.restarts)
}

func TestUpdateFailed(t *testing.T) {
	s, _, inst := newTestServer(t)
	inst.err = errors.New("short write")

	w := serve(s, uploadRequest(t, []byte("x")))
	assert.Equal(t, msgUpdateFailed, w.Body.String())
	assert.Equal(t, 0, inst.restarts)
}

func TestUpdateWithoutImage(t *testing.T) {
	s, _, inst := newTestServer(t)
	w := serve(s, httptest.NewRequest(http.MethodPost, "/update", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, inst.restarts)
}

func TestStoppedServerRejects(t *testing.T) {
	s, controls, _ := newTestServer(t)
	require.NoError(t, s.Stop())

	w := serve(s, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, controls.calls)
}

func TestStopReleasesWaitingRequest(t *testing.T) {
	s, controls, _ := newTestServer(t)

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/displaymode", nil))
		close(done)
	}()
	require.Eventually(t, func() bool { return len(s.jobs) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	<-done
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, controls.redraws, "dropped request must not run")

	// restarted listener serves again
	require.NoError(t, s.Start())
	w = serve(s, httptest.NewRequest(http.MethodGet, "/displaymode", nil))
	assert.Equal(t, "FPS", w.Body.String())
}

func TestOneJobPerTick(t *testing.T) {
	s, controls, _ := newTestServer(t)

	const n = 3
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			s.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/info", nil))
			done <- struct{}{}
		}()
	}
	require.Eventually(t, func() bool { return len(s.jobs) == n }, time.Second, time.Millisecond)

	for i := 1; i <= n; i++ {
		s.Tick()
		<-done
		assert.Equal(t, i, controls.calls)
	}
}
