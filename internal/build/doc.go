// Package build orchestrates a site build as a fixed, ordered list of stages.
//
// Each stage declares the artifacts it needs and produces; the pipeline is
// validated when a Builder is created. Stages write into a staging directory
// that is promoted over the output directory only after every stage
// succeeded, so a failed build leaves the previous output untouched.
package build
