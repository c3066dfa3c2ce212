package transport_test

import (
	"context"
	"encoding/base64"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/shavar/lists"
	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/storage"
	"github.com/luma/shavar/transport"
)

func makeHTTPServer(store storage.Store, decode protocol.Options) *transport.HTTP {
	return transport.NewHTTP(transport.Options{
		Host:   "127.0.0.1",
		Port:   0,
		Decode: decode,
		Store:  store,
		Log:    zap.NewNop(),
	})
}

func serve(h *transport.HTTP, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	h.Handler().ServeHTTP(w, req)
	return w
}

var _ = Describe("transport", func() {
	var (
		store *storage.InmemoryStore
		h     *transport.HTTP
	)

	BeforeEach(func() {
		store = storage.NewInmemoryStore()
		h = makeHTTPServer(store, protocol.Options{})
	})

	AfterEach(func() {
		store.Close()
	})

	It("responds to ping", func() {
		w := serve(h, http.MethodGet, "/ping", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("pong"))
	})

	Describe("POST /v1/decode/update", func() {
		It("returns the decoded update", func() {
			w := serve(h, http.MethodPost, "/v1/decode/update", "n:1200\ni:goog-phish-shavar\nad:1-3\n")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{
				"nextPollSeconds": 1200,
				"rekey": false,
				"reset": false,
				"deletes": [{
					"listName": "goog-phish-shavar",
					"isSubDel": false,
					"ranges": [{"low": 1, "high": 3}]
				}],
				"redirects": []
			}`))
		})

		It("reports the class of decode errors", func() {
			w := serve(h, http.MethodPost, "/v1/decode/update", "ad:1-3\n")
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring(`"class":"grammar"`))
		})
	})

	Describe("POST /v1/decode/chunks", func() {
		It("decodes chunks for the named list", func() {
			w := serve(h, http.MethodPost, "/v1/decode/chunks?list=goog-phish-shavar", "a:1:4:9\nhhhh\x01aaaa")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{
				"chunks": [{
					"number": 1,
					"isAdd": true,
					"hosts": [{
						"host": "68686868",
						"entry": {"kind": "add-prefix", "prefixes": ["61616161"]}
					}]
				}],
				"rekey": false
			}`))
		})

		It("rejects chunks that fail to verify when keyed", func() {
			key := base64.URLEncoding.EncodeToString([]byte("0123456789abcdef"))
			keyed := makeHTTPServer(store, protocol.Options{Key: key})

			w := serve(keyed, http.MethodPost, "/v1/decode/chunks?list=goog-phish-shavar&mac=AAAA", "a:1:4:5\nhhhh\x00")
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring(`"class":"integrity"`))
		})
	})

	Describe("POST /v1/decode/gethash", func() {
		It("reports truncated responses as framing errors", func() {
			w := serve(h, http.MethodPost, "/v1/decode/gethash", "goog-phish-shavar:1:32\nshort")
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring(`"class":"framing"`))
		})
	})

	Describe("POST /v1/decode/keys", func() {
		It("returns the keys", func() {
			w := serve(h, http.MethodPost, "/v1/decode/keys", "clientkey:2:ck\nwrappedkey:2:wk\n")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"clientKey":"ck","wrappedKey":"wk"}`))
		})
	})

	Describe("GET /v1/lists", func() {
		It("reports the chunk ranges held", func() {
			chunks := []protocol.Chunk{
				{Number: 1, IsAdd: true, Hosts: []protocol.HostRecord{}},
				{Number: 2, IsAdd: true, Hosts: []protocol.HostRecord{}},
				{Number: 7, IsAdd: false, Hosts: []protocol.HostRecord{}},
			}
			Expect(store.InsertChunks(context.Background(), lists.PhishName, chunks)).To(Succeed())

			w := serve(h, http.MethodGet, "/v1/lists?list="+lists.PhishName+"&list=other", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`[
				{"name": "goog-phish-shavar", "adds": "1-2", "subs": "7"},
				{"name": "other", "adds": "", "subs": ""}
			]`))
		})

		It("defaults to every known list", func() {
			w := serve(h, http.MethodGet, "/v1/lists", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(lists.MalwareName))
			Expect(w.Body.String()).To(ContainSubstring(lists.ExtensionBlacklistName))
		})
	})

	Describe("Start() / Close()", func() {
		It("listens until closed", func() {
			Expect(h.Start(context.Background())).To(Succeed())
			addr := h.Addr()

			resp, err := http.Get("http://" + addr + "/ping")
			Expect(err).To(Succeed())
			body, err := ioutil.ReadAll(resp.Body)
			Expect(err).To(Succeed())
			resp.Body.Close()
			Expect(string(body)).To(Equal("pong"))

			Expect(h.Close()).To(Succeed())

			_, err = http.Get("http://" + addr + "/ping")
			Expect(err).NotTo(Succeed())
		})
	})
})
