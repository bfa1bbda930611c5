// Package emotion tags glossed segments with an emotion label and score.
//
// Classification is delegated to a Classifier: either an HTTP service
// exposing POST /detect, or a chat model prompted for JSON through the llm
// client. Segments with blank text are labelled neutral without a call.
package emotion
