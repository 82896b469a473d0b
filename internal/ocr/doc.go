// Package ocr is a thin client for the table-aware OCR service used when a
// district publishes notices as images. Only the document structure the
// scraper needs (tables, cells, text lines, words) is modeled; everything
// else in the service response is ignored.
package ocr
