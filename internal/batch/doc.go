// Package batch runs bib number detection over single images, directories
// and ground-truth files.
//
// A directory run writes a CSV into the directory that maps every number
// read to the images it was read from. A ground-truth run reads a
// ';'-separated file of image paths and expected numbers, compares each
// reading and prints precision, recall and F-score.
//
// Images are processed by a bounded pool of workers. Each worker owns one
// Processor, created by a Factory, so a Tesseract handle is never shared.
package batch
