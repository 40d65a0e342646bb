// Package gemini implements the generation.StoryGenerator interface
// using Google's Gemini API. It builds the prompt from a template,
// retries transient API failures with exponential backoff, and parses
// the reward pool out of the generated narrative.
package gemini
