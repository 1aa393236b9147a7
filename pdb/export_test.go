package pdb

// Export some internal functions for testing

var IsHeaderLine = isHeaderLine
var CheckID = checkID
