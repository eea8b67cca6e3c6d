// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus"
)

var RPCEndpoint = "http://localhost:8545"

var logMutex sync.Mutex

type JSONRPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *JSONRPCError   `json:"error,omitempty"`
	Result  interface{}     `json:"result"`
}

type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSONRPCHandler answers one request. Returning a nil result and nil error produces a
// JSON null result.
type JSONRPCHandler func(method string, params []json.RawMessage) (interface{}, *JSONRPCError)

func StartMockServer(t *testing.T) {
	httpmock.Activate()
}

func StopMockServer(_ *testing.T) {
	httpmock.DeactivateAndReset()
}

// MockJSONRPC registers handler for POSTs to url, echoing each request id.
func MockJSONRPC(t *testing.T, url string, handler JSONRPCHandler) {
	httpmock.RegisterResponder("POST", url, func(req *http.Request) (*http.Response, error) {
		var rpcReq JSONRPCRequest
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			t.Errorf("invalid JSON-RPC request: %s", err)
			return httpmock.NewStringResponse(400, err.Error()), nil
		}
		result, rpcErr := handler(rpcReq.Method, rpcReq.Params)
		return httpmock.NewJsonResponse(200, &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      rpcReq.ID,
			Error:   rpcErr,
			Result:  result,
		})
	})
}

// CaptureOutput runs fn with os.Stdout and logrus redirected, and returns what was written.
func CaptureOutput(fn func()) string {
	originalOutput := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	os.Stdout = writer
	logMutex.Lock()
	logrus.SetOutput(writer)
	logMutex.Unlock()

	buffer := &bytes.Buffer{}
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(buffer, reader)
		close(done)
	}()

	func() {
		defer func() {
			os.Stdout = originalOutput
			logMutex.Lock()
			logrus.SetOutput(os.Stderr)
			logMutex.Unlock()
		}()
		fn()
	}()
	writer.Close()
	<-done
	reader.Close()
	return buffer.String()
}
