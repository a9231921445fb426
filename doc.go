// Package dataverb provides a grammar of data manipulation for tabular
// data: column-wise verbs composed into pipelines over plain, grouped and
// row-wise frames.
//
// Typical use is as follows:
//
//  1. Build a DataFrame from series, or from a slice of structs with FromStructs
//  2. Compose a pipeline of verb steps with Pipe (GroupBy, Mutate, Filter, Summarise, ...)
//  3. Run the pipeline against the frame
//  4. Inspect the resulting frame, or convert it back with ToStructs
//
// Verbs take their arguments unevaluated. Column references (Col),
// arithmetic and comparisons on them, and descriptors such as Across,
// IfAny and IfAll are resolved against the frame only when the pipeline
// runs, each in the evaluation context its verb declares.
//
// Grouping and Shape
//
// A frame travels through a pipeline in one of three shapes: plain,
// grouped (GroupBy) or row-wise (Rowwise). Every verb is polymorphic over
// the three and restores the right envelope on its result; Summarise
// additionally peels grouping keys according to its GroupsPolicy. The
// envelope owns no data of its own, so Ungroup is free.
//
// Frames, like the verbs, are value-oriented: a verb never modifies its
// input, it builds a new frame sharing unchanged columns. It is safe to
// keep a reference to a frame across pipeline runs, but not to mutate a
// Series' Values slice while a pipeline using it is running.
package dataverb
