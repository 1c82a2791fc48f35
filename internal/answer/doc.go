// Package answer fulfills Lex V1 intents with Amazon Kendra results.
//
// The search intent receives the Kendra response that Lex already
// obtained through AMAZON.KendraSearchIntent. The fallback intent queries
// the index itself using the raw input transcript. Both render the first
// result item as text, linking source documents through presigned URLs.
package answer
