package leads

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciia-mx/leadflow/internal/actionlog"
)

func newHandlerFixture(t *testing.T, callStatus string) (*Handler, *orchestratorFixture) {
	t.Helper()
	fx := newFixture(t, callStatus)
	return NewHandler(fx.orchestrator, nil), fx
}

func postLead(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateLeadSuccess(t *testing.T) {
	h, fx := newHandlerFixture(t, "queued")

	rec := postLead(t, h, `{"nombre":"Ana","email":"ana@x.com","telefono":"5512345678","empresa":"Acme","servicio":"Consultoría","fuente":"web"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(9001), body["lead_id"])
	assert.Equal(t, []string{"Consultoría - Ana"}, fx.directory.oppNames)
}

func TestCreateLeadValidationListsAllFields(t *testing.T) {
	h, fx := newHandlerFixture(t, "queued")

	rec := postLead(t, h, `{"empresa":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	errMsg := body["error"].(string)
	for _, field := range []string{"nombre", "email", "telefono", "servicio", "fuente"} {
		assert.Contains(t, errMsg, field)
	}
	assert.Zero(t, fx.directory.contactCreates)
	assert.Zero(t, fx.outreach.calls)
}

func TestCreateLeadMalformedJSONTreatedAsEmpty(t *testing.T) {
	h, _ := newHandlerFixture(t, "queued")

	rec := postLead(t, h, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "nombre")
}

func TestCreateLeadInternalFailure(t *testing.T) {
	h, fx := newHandlerFixture(t, "queued")
	fx.directory.failOpp = assertableError("create blew up")

	rec := postLead(t, h, `{"nombre":"Ana","email":"ana@x.com","telefono":"5512345678","servicio":"Consultoría","fuente":"web"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "create blew up")
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestEndToEndAnaWithFailedCall(t *testing.T) {
	// The worked example: fresh store, failed call, fallback message sent.
	dir := newFakeDirectory()
	mailer := &fakeMailer{}
	out := &fakeOutreach{callStatus: "failed"}
	actions := actionlog.New(filepath.Join(t.TempDir(), "actions_log.json"), nil)
	h := NewHandler(NewOrchestrator(dir, mailer, out, actions, nil, nil), nil)

	rec := postLead(t, h, `{"nombre":"Ana","email":"ana@x.com","telefono":"5512345678","empresa":"Acme","servicio":"Consultoría","fuente":"web"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, body["lead_id"])

	assert.Equal(t, 1, dir.contactCreates)
	assert.Equal(t, []string{"Consultoría - Ana"}, dir.oppNames)
	assert.Equal(t, 1, mailer.sends)
	assert.Equal(t, 1, out.calls)
	assert.Equal(t, 1, out.messages)
	assert.Len(t, actions.Entries(), 4)
}
