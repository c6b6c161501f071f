package db

import "encoding/json"

type keyInput struct {
	Path string `path:"path" example:"courses" doc:"Коллекция"`
}

type keyOutput struct {
	Body keyResponse
}

type keyResponse struct {
	Key string `json:"key" doc:"Сгенерированный ключ, упорядоченный по времени"`
}

type childInput struct {
	Path string `path:"path" example:"courses" doc:"Коллекция"`
	Key  string `path:"key" example:"01hx3v7k8m2n4p6q8r0s2t4v6w" doc:"Ключ записи"`
}

type childOutput struct {
	Body childResponse
}

type childResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type writeInput struct {
	Path    string `path:"path" example:"courses" doc:"Коллекция"`
	Key     string `path:"key" example:"01hx3v7k8m2n4p6q8r0s2t4v6w" doc:"Ключ записи"`
	RawBody []byte `contentType:"application/json"`
}

type output struct {
	Body response
}

type response struct {
	Key    string `json:"key,omitempty"`
	Status string `json:"status"`
}
