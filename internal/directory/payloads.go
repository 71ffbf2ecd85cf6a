package directory

// Wire shapes for the Kommo v4 API. Only the fields the orchestrator touches
// are modeled.

type addRequest[T any] struct {
	Add []T `json:"add"`
}

type updateRequest struct {
	Update []statusUpdatePayload `json:"update"`
}

type fieldValue struct {
	EnumCode string `json:"enum_code,omitempty"`
	Value    string `json:"value"`
}

type contactField struct {
	FieldCode string       `json:"field_code"`
	Values    []fieldValue `json:"values"`
}

type customField struct {
	FieldID int64        `json:"field_id"`
	Values  []fieldValue `json:"values"`
}

type contactPayload struct {
	Name         string         `json:"name"`
	CompanyName  string         `json:"company_name,omitempty"`
	CustomFields []contactField `json:"custom_fields_values"`
}

type contactRef struct {
	ID int64 `json:"id"`
}

type opportunityEmbedded struct {
	Contacts []contactRef `json:"contacts"`
}

type opportunityPayload struct {
	Name         string               `json:"name"`
	PipelineID   jsonToken            `json:"pipeline_id,omitempty"`
	StatusID     jsonToken            `json:"status_id,omitempty"`
	CustomFields []customField        `json:"custom_fields_values,omitempty"`
	Embedded     *opportunityEmbedded `json:"_embedded,omitempty"`
}

type statusUpdatePayload struct {
	ID       jsonToken `json:"id"`
	StatusID jsonToken `json:"status_id"`
}

type contactListResponse struct {
	Embedded struct {
		Contacts []contactRef `json:"contacts"`
	} `json:"_embedded"`
}

type opportunityListResponse struct {
	Embedded struct {
		Leads []contactRef `json:"leads"`
	} `json:"_embedded"`
}
