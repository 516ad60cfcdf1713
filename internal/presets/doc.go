// Package presets manages saved rendering-option bundles: fonts, colors,
// scaling, and social-media channel bindings applied during clip
// finalization.
package presets
