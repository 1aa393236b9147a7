package header

// Export some internal functions for testing

var RecordText = recordText
var FixedCont = fixedCont
