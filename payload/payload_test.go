package payload

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/bbscontroller/fields"
)

func TestDecodeAndValidateAddThread(t *testing.T) {
	var req AddThreadRequest
	require.NoError(t, json.Unmarshal([]byte(`{"category_id":3,"user_id":1,"title":"Hello","description":"World"}`), &req))
	require.NoError(t, req.Validate())
	assert.Equal(t, uint32(3), req.CategoryID.Uint32())
	assert.Equal(t, "Hello", req.Title.String())

	req = AddThreadRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"category_id":3,"title":"Hello"}`), &req))
	err := req.Validate()
	var verr *fields.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_id", verr.Field)
}

func TestDecodeRejectsInvalidFields(t *testing.T) {
	var req AddCategoryRequest
	assert.Error(t, json.Unmarshal([]byte(`{"title":"","description":"x"}`), &req))

	var edit EditCategoryRequest
	assert.Error(t, json.Unmarshal([]byte(`{"id":0}`), &edit))
}

func TestEditLeavesAbsentFieldsNil(t *testing.T) {
	var req EditThreadRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"description":"only this","title":null}`), &req))
	require.NoError(t, req.Validate())
	assert.Nil(t, req.Title)
	require.NotNil(t, req.Description)
	assert.Equal(t, "only this", req.Description.String())
}

func TestOptionalParent(t *testing.T) {
	var req AddCommentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"thread_id":1,"user_id":2,"content":"hi"}`), &req))
	assert.Nil(t, req.ParentID)

	require.NoError(t, json.Unmarshal([]byte(`{"thread_id":1,"user_id":2,"parent_id":5,"content":"hi"}`), &req))
	require.NotNil(t, req.ParentID)
	assert.Equal(t, uint32(5), req.ParentID.Uint32())
}

func TestListRequestsNeedNothing(t *testing.T) {
	assert.NoError(t, GetCategoriesRequest{}.Validate())
	assert.NoError(t, GetAllThreadsRequest{}.Validate())
	assert.NoError(t, GetAllCommentsRequest{}.Validate())
	assert.Error(t, SearchRequest{}.Validate())
	assert.Error(t, HideCommentRequest{}.Validate())
}

func TestResponseErrorShape(t *testing.T) {
	cases := []struct {
		err    *ResponseError
		name   string
		status int
		code   int
	}{
		{NewInternalServerError(), "InternalServerError", http.StatusInternalServerError, 50000},
		{NewMissingContent(), "MissingContent", http.StatusNotFound, 40400},
		{NewInvalidContent("bad title"), "InvalidContent", http.StatusBadRequest, 40000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.err.Name())
		assert.Equal(t, tc.status, tc.err.Status())
		assert.Equal(t, tc.code, tc.err.Code())
		assert.NotEmpty(t, tc.err.Error())
	}
	assert.Contains(t, NewInvalidContent("bad title").Error(), "bad title")
}

func TestCommentJSON(t *testing.T) {
	id, _ := fields.NewCommentID(4)
	thread, _ := fields.NewThreadID(2)
	user, _ := fields.NewUserID(1)
	content, _ := fields.NewCommentContent("hi")
	c := Comment{ID: id, ThreadID: thread, UserID: user, Content: content, Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"thread_id":2,"user_id":1,"parent_id":null,"content":"hi","timestamp":"2024-01-02T03:04:05Z","hidden":false}`, string(b))
}
