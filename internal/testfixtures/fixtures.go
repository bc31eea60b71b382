// Package testfixtures holds literal project/survey byte fixtures for
// end-to-end tests that run the real parsers; internal/network's
// integration test is currently its only user.
package testfixtures

// SimpleProject is a minimal project descriptor: one survey file, one fixed
// station, convergence application enabled with no override value.
const SimpleProject = `#cave.dat,A[F,0,0,0];
!GV;
&WGS 1984;
`

// SimpleSurvey is the survey file SimpleProject points to: a two-shot
// traverse from the fixed station A.
const SimpleSurvey = `Sample Cave
SURVEY NAME: X1
SURVEY DATE: 6 15 1998
SURVEY TEAM:
Jane Doe

DECLINATION: 0.00 FORMAT: DDDDLUDRLADN CORRECTIONS: 0.00 0.00 0.00

FROM TO LENGTH BEARING DIP LEFT UP DOWN RIGHT

A B 50.00 90.00 0.00 2.00 3.00 3.00 2.00
B C 50.00 0.00 0.00 2.00 3.00 3.00 2.00
`
